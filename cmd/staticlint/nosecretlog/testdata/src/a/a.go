package a

type logger struct{}

func (logger) Infow(msg string, keysAndValues ...interface{}) {}
func (logger) Debugln(args ...interface{})                    {}
func (logger) Errorf(template string, args ...interface{})    {}

type account struct {
	ID           string
	Email        string
	PasswordHash string
}

type settings struct {
	JWTSecret string
}

func register(log logger, usr account, password string, cfg settings) {
	log.Infow("user registered", "user_id", usr.ID, "email", usr.Email)
	log.Infow("user registered", "hash", usr.PasswordHash) // want `possible secret passed to logger: usr.PasswordHash`
	log.Debugln("registering with", password)             // want `possible secret passed to logger: password`
	log.Errorf("bad secret %q", cfg.JWTSecret)              // want `possible secret passed to logger: cfg.JWTSecret`
	log.Debugln("password was rejected")
	_ = hash(password)
}

func hash(password string) string {
	return password
}
