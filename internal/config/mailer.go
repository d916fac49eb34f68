package config

// MailerConfig содержит настройки SMTP для почтовых уведомлений.
// Пустой хост отключает отправку почты.
type MailerConfig struct {
	Host     string `yaml:"host" env:"TASKER_SMTP_HOST" env-default:""`
	Port     int    `yaml:"port" env:"TASKER_SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"TASKER_SMTP_USERNAME" env-default:""`
	Password string `yaml:"password" env:"TASKER_SMTP_PASSWORD" env-default:""`
	From     string `yaml:"from" env:"TASKER_SMTP_FROM" env-default:"no-reply@gotasker.local"`
}

// Enabled сообщает, настроена ли отправка почты.
func (c *MailerConfig) Enabled() bool {
	return c.Host != ""
}
