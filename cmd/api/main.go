package main

import (
	"go.uber.org/fx"

	"github.com/meatline/meatline/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
