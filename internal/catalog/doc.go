// Package catalog supplies the set of assets a run materializes.
//
// # Built-in Catalog
//
// Default returns the meme template catalog shipped with memefetch:
//
//	c := catalog.Default()
//	for _, e := range c.Entries() {
//	    fmt.Println(e.Name, e.URL)
//	}
//
// # Catalog Files
//
// A catalog can also be read from YAML, either as an ordered mapping of file
// name to URL:
//
//	this_is_fine.jpg: https://i.imgflip.com/1nhqil.jpg
//	drake_no.jpg: https://i.imgflip.com/30b1gx.jpg
//
// or as an explicit entry list:
//
//	entries:
//	  - name: this_is_fine.jpg
//	    url: https://i.imgflip.com/1nhqil.jpg
//
// Both forms keep document order, which becomes the processing order.
package catalog
