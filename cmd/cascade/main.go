// Command cascade keeps a chain of requirement, design, and implementation
// documents in sync by cascading detected changes through a model.
package main

import "github.com/papercrane/cascade/cmd"

func main() {
	cmd.Execute()
}
