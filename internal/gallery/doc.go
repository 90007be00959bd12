// Package gallery connects the preview cache, the render pool and the
// viewport driver behind one list view.
//
//	g := gallery.New(gallery.DefaultConfig(), preview.NewFileRenderer(rc), view)
//	go g.Run(ctx)
//	defer g.Close()
//
//	g.LoadFiles(paths)
//	// on every scroll:
//	g.Scrolled()
package gallery
