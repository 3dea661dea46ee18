// Command import_locations loads a geographic reference dataset into the
// gazetteer database.
package main

func main() {
	Execute()
}
