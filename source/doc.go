// Package source provides document loaders for the template package and a
// file watcher for re-rendering when documents change.
//
// # Loaders
//
//	loader := source.Dir("templates")      // files below a directory
//	loader := source.FS(embeddedFiles)     // any fs.FS
//	loader := source.Map{"page": "..."}    // in memory
//
//	tmpl, err := template.New(loader, "page.txt")
//
// Names are slash-separated paths relative to the loader's root. Names
// that escape the root are rejected.
//
// # Watching
//
// Watch calls a function whenever one of the given files changes:
//
//	err := source.Watch(ctx, []string{"templates/page.txt"}, func(path string) {
//		// re-render
//	})
package source
