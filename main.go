package main

import "vetclinic-backend/cmd"

func main() {
	cmd.Execute()
}
