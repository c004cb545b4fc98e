package main

import (
	"os"

	"github.com/tradinghub/backend/internal/app"
)

func main() {
	os.Exit(app.Main())
}
