package handler

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

	usernameIllegal = regexp.MustCompile(`[^\w.@+-]+`)
)

// usernameFromEmail strips the characters a username cannot hold from the
// local part of email. The result may still be empty or reserved.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = usernameIllegal.ReplaceAllString(local, "")
	if len(local) > 150 {
		local = local[:150]
	}
	return local
}

// reservedUsername is taken by the own-profile route.
const reservedUsername = "me"

// usernameRules apply to every username a client can choose.
func usernameRules() []validation.Rule {
	return []validation.Rule{
		validation.Length(1, 150),
		validation.Match(usernamePattern).Error("letters, digits and @/./+/-/_ only"),
		validation.By(func(v any) error {
			if s, _ := v.(string); strings.EqualFold(s, reservedUsername) {
				return validation.NewError("validation_username_reserved", `username "me" is reserved`)
			}
			return nil
		}),
	}
}

func slugRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(1, 50),
		validation.Match(slugPattern).Error("letters, digits, hyphens and underscores only"),
	}
}
