// cmd/recgroup/main.go
package main

import (
	"recgroup/internal/app"
	"recgroup/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
