// Command isim drives an X11 display: synthesized keyboard and mouse input,
// window control and window/screen queries, run directly, through the
// daemon, or as MCP tools.
package main

import "os"

func main() {
	os.Exit(Execute())
}
