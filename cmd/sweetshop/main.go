// Command sweetshop runs the sweet shop API server and ships a small client
// for it.
//
// @title                       Sweet Shop API
// @version                     1.0
// @description                 Registration, login and inventory management for the sweet shop catalog.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"os"

	"github.com/sweetshop/sweet-api/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
