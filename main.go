package main

import keygate "github.com/keygate/keygate/cmd/keygate"

func main() {
	keygate.Execute()
}
