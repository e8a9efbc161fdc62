package entity

type Config struct {
	Port           string
	RedisAddr      string
	APIEndpoint    string
	APIAccessToken string
	// Number of posts per content API page.
	PageSize  int
	SiteURL   string
	SiteTitle string
}
