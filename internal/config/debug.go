package config

import "os"

func IsDebug() bool {
	return os.Getenv("BIDBOT_DEBUG") == "1"
}
