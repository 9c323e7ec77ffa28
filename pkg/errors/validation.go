package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

const (
	maxPathLen         = 500
	maxTemplateNameLen = 64
)

// ValidatePath checks an asset path taken from a badge document. Paths are
// resolved under an asset root, so they must be short, slash-separated,
// relative and free of ".." segments and control characters.
func ValidatePath(path string) error {
	bad := func(why string, args ...any) error {
		return New(ErrCodeInvalidPath, "asset path "+why, args...)
	}
	switch {
	case path == "":
		return bad("is empty")
	case len(path) > maxPathLen:
		return bad("exceeds %d characters", maxPathLen)
	case strings.IndexFunc(path, unicode.IsControl) >= 0:
		return bad("contains control characters")
	case strings.ContainsRune(path, '\\'):
		return bad("must use forward slashes")
	case strings.HasPrefix(path, "/"):
		return bad("must be relative to the asset root")
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return bad("escapes the asset root")
		}
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if raw == "" || err != nil {
		return New(ErrCodeInvalidInput, "invalid URL %q", raw)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %q must be absolute http or https", raw)
	}
	return nil
}

// Template names double as file names and URL path segments.
var templateName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateTemplateName checks the name of a stored badge template.
func ValidateTemplateName(name string) error {
	if len(name) > maxTemplateNameLen {
		return New(ErrCodeInvalidInput, "template name longer than %d characters", maxTemplateNameLen)
	}
	if !templateName.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid template name %q: use lowercase letters, digits, - and _", name)
	}
	return nil
}
