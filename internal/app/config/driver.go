package config

type DriverConfig struct {
	MongoDB  MongoDB
	Redis    Redis
	RabbitMQ RabbitMQ
	Logger   Logger
}

type MongoDB struct {
	Port     string
	Host     string
	DbName   string
	Username string
	Password string
}

type Redis struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitMQ struct {
	Port     string
	Host     string
	Username string
	Password string
}

type Logger struct {
	Level               string
	OutputFileName      string
	OutputErrorFileName string
}
