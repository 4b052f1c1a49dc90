// skirmish runs headless engine-vs-engine matches, archives them to
// Postgres, and optionally streams live state to WebSocket spectators.
package main

func main() {
	Execute()
}
