package dotenv

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnvs loads the .env file cascade following the convention:
// https://github.com/bkeepers/dotenv#what-other-env-files-can-i-use
// It only needs to be called once in main; other code reads configuration
// through os.Getenv during runtime.
func LoadDotEnvs() error {
	loadDotEnvs("")
	return nil
}

func loadDotEnvs(rootPath string) {
	env := os.Getenv("TGPORTAL_ENV")
	if env == "" {
		env = "dev"
	}

	// .env.[runtime_env].local has highest priority, usually contains
	// credentials and other sensitive values
	godotenv.Load(rootPath + ".env." + env + ".local")
	godotenv.Load(rootPath + ".env.local")
	// .env.[runtime_env] usually contains db connection information
	godotenv.Load(rootPath + ".env." + env)
	// .env contains shared variables, overwritten by the files above
	godotenv.Load(rootPath + ".env")
}
