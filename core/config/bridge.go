package config

// Installation identifies this game-server installation to the web
// counterpart. Both values participate in token derivation: the id is
// public, the secret never leaves the process.
type Installation struct {
	ID     string `env:"MOTD_INSTALLATION_ID,required"`
	Secret string `env:"MOTD_INSTALLATION_SECRET,required"`
}

// SecretStore selects and configures the record store backing the
// per-player rotating secrets.
type SecretStore struct {
	// Driver is one of "redis", "postgres", "mongo".
	Driver string `env:"MOTD_SECRET_STORE_DRIVER" envDefault:"redis"`
	URL    string `env:"MOTD_SECRET_STORE_URL,required"`
}
