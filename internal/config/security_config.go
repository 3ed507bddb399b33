package config

type SecurityConfig interface {
	GetAccessTokenSecret() string
	GetAccessTokenCookie() string
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetAccessTokenSecret is the HMAC secret shared with the auth service that issues access tokens
func (Security) GetAccessTokenSecret() string {
	return GetEnv("ACCESS_TOKEN_SECRET", "")
}

func (Security) GetAccessTokenCookie() string {
	return GetEnv("ACCESS_TOKEN_COOKIE", "accessToken")
}
