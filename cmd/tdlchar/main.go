/*
Copyright © 2026 Todd Leonhardt
*/
package main

import "github.com/toddleonhardt/go-tdlchar/cmd"

func main() {
	cmd.Execute()
}
