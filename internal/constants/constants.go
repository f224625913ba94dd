// Package constants holds cross-package default values too small to
// deserve their own config-schema struct field comment.
package constants

// DefaultSyntaxTheme is the Chroma style name internal/config falls
// back to when [editor].theme is unset.
//
// Available themes (anything Chroma's styles.Get recognizes):
//
// Dark themes (recommended for terminals):
//   - monokai           - Classic Sublime Text theme
//   - dracula           - Popular purple/pink theme
//   - nord              - Cool bluish theme
//   - gruvbox           - Warm, retro colors
//   - onedark           - Atom's One Dark
//   - github-dark       - GitHub's dark theme
//   - solarized-dark    - Classic Solarized
//   - catppuccin-mocha  - Pastel dark theme
//   - tokyonight-night  - Popular VSCode theme
//   - rose-pine         - Pine-inspired theme
//   - native            - Chroma's native dark
//   - vim               - Classic Vim colors
//   - vulcan            - Star Trek inspired (the default)
//   - xcode-dark        - Xcode dark theme
//
// Light themes:
//   - github, solarized-light, gruvbox-light, catppuccin-latte,
//     tokyonight-day, rose-pine-dawn, vs, xcode
//
// Other themes:
//   - fruity, autumn, friendly, colorful, tango, algol, arduino,
//     base16-snazzy, borland, emacs, pygments, rainbow_dash, and more.
const DefaultSyntaxTheme = "vulcan"
