package config

// JWTConfig содержит настройки для JWT токенов и хэширования паролей.
// Токены сессий не имеют срока жизни: их действительность определяется
// наличием записи в хранилище.
type JWTConfig struct {
	SecretKey  string `yaml:"secret_key" env:"TASKER_JWT_SECRET_KEY" env-default:"super-secret-key-change-me-in-production"`
	BCryptCost int    `yaml:"bcrypt_cost" env:"TASKER_JWT_BCRYPT_COST" env-default:"10"`
}
