// Package files discovers the table files a command can read.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.BaseDir)
//	tables, err := discovery.FindTables(paths.DataDir)
//	if latest, ok := files.GetLatestFile(tables); ok {
//	    fmt.Println(latest.Path)
//	}
package files
