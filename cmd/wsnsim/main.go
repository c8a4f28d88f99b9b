// wsnsim simulates flooding protocols in a wireless sensor network.
package main

import (
	"github.com/joho/godotenv"
	"github.com/tebeka/atexit"
)

func main() {
	// A .env file can predefine the WSNSIM_* defaults.
	_ = godotenv.Load()

	execute()
	atexit.Exit(0)
}
