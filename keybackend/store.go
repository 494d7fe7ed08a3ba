package keybackend

// KeysConfig is the signing.keys section of the server config.
type KeysConfig struct {
	Inline []KeyPair `mapstructure:"inline"`
	File   string    `mapstructure:"file"`
}

// NewSecretStore builds the verification key set from inline pairs and the
// optional keys file. A pair in the file replaces an inline pair with the same
// access key, so a rotated secret can be rolled out without editing the YAML.
func NewSecretStore(cfg KeysConfig) (*MapSecretStore, error) {
	keys := make(map[string]string, len(cfg.Inline))
	for _, p := range cfg.Inline {
		if p.complete() {
			keys[p.AccessKey] = p.SecretKey
		}
	}

	if cfg.File == "" {
		return NewMapSecretStore(keys), nil
	}

	fromFile, err := LoadKeysFromFile(cfg.File)
	if err != nil {
		return nil, err
	}
	for access, secret := range fromFile {
		keys[access] = secret
	}

	return NewMapSecretStore(keys), nil
}
