// Package ui provides the styled terminal output used by ssup: the header
// banner, the help overview of a Supfile and the tables used to print plans.
//
// Colors are defined as ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Successful operations
//	ColorError     (red)    - Failures and errors
//	ColorWarning   (yellow) - Warnings, makefile-mode notice
//	ColorInfo      (cyan)   - Banner title
//	ColorMuted     (gray)   - Secondary text
//	ColorSecondary (blue)   - Section titles
//
// Use DisableColors() to switch to monochrome output (for --no-color), or
// ConfigureColors() to also honour NO_COLOR and non-terminal output.
package ui
