// Package restodex is the Go client for the restodex restaurant search service.
//
// # Direct calls
//
//	c, _ := restodex.New("http://localhost:8080", restodex.WithAPIKey(key))
//	id, _ := c.Create(ctx, restodex.NewRestaurant{Name: "Pizza Palace", Cuisine: "Italian"})
//	hits, _ := c.Search(ctx, "piza")
//
// # Search as you type
//
// A Debouncer coalesces keystrokes into one request per quiet period and
// drops responses that were overtaken by newer input:
//
//	d := restodex.NewDebouncer(c, func(u restodex.Update) {
//	    if u.Cleared {
//	        render(nil)
//	        return
//	    }
//	    render(u.Results)
//	})
//	defer d.Close()
//	d.Input("p")
//	d.Input("piz")
//	d.Input("pizza") // one request, 300ms after the last keystroke
package restodex
