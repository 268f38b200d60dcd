package users

import (
	"github.com/belaychat/belay/backend/internal/random"
)

const (
	namePrefix     = "Unnamed User #"
	nameSuffixLen  = 6
	passwordLength = 10
	apiKeyLength   = 40
)

func randomDisplayName() (string, error) {
	suffix, err := random.String(random.Digits, nameSuffixLen)
	if err != nil {
		return "", err
	}
	return namePrefix + suffix, nil
}

func randomPassword() (string, error) {
	return random.String(random.LowerAlphanum, passwordLength)
}

func randomAPIKey() (string, error) {
	return random.String(random.LowerAlphanum, apiKeyLength)
}
