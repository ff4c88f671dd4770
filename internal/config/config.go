package config

type Config struct {
	BaseURL  string
	HttpPort int
	Db       struct {
		Dsn         string
		Automigrate bool
	}
	Jwt struct {
		SecretKey string
	}
	Notifications struct {
		Email string
	}
	Smtp struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Otp struct {
		Length        int
		ExpirySeconds int
		// EchoCodes makes the OTP request endpoint return the generated code
		// in the response body. This is for testing convenience on
		// non-production tiers and must never be enabled in production.
		EchoCodes bool
	}
	Auth struct {
		MaxLoginAttempts    int
		LockDurationSeconds int
	}
	Verification struct {
		ValidityDays int
	}
	SweepIntervalSeconds int
	KafkaServers         string
	RedisServer          string
}
