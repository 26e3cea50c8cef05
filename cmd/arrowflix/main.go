// Command arrowflix runs the movie-browsing backend: account registration and
// login with bearer-token sessions, and a read-only proxy to the TMDB catalog.
package main

import (
	"log"

	"github.com/patric-chuzhbe/arrowflix/internal/app"
)

func run() error {
	theApp, err := app.New()
	if err != nil {
		return err
	}
	defer theApp.Close()

	return theApp.Run()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
