package catalog

import "github.com/handiism/memefetch/internal/model"

// defaultEntries are imgflip template images used by the receipt app's meme theme.
var defaultEntries = []model.Entry{
	{Name: "this_is_fine.jpg", URL: "https://i.imgflip.com/1nhqil.jpg"},
	{Name: "distracted_bf.jpg", URL: "https://i.imgflip.com/1ur9b0.jpg"},
	{Name: "clown_makeup.jpg", URL: "https://i.imgflip.com/38el31.jpg"},
	{Name: "drowning_highfive.jpg", URL: "https://i.imgflip.com/1wz1x0.jpg"},
	{Name: "galaxy_brain.jpg", URL: "https://i.imgflip.com/1jwhww.jpg"},
	{Name: "pepe_crying.jpg", URL: "https://i.imgflip.com/2r8qh4.png"},
	{Name: "drake_no.jpg", URL: "https://i.imgflip.com/30b1gx.jpg"},
	{Name: "sweating_guy.jpg", URL: "https://i.imgflip.com/1c1uej.jpg"},
	{Name: "disaster_girl.jpg", URL: "https://i.imgflip.com/23ls.jpg"},
	{Name: "exit_this_way.jpg", URL: "https://i.imgflip.com/1r7eny.jpg"},
	{Name: "imagination.jpg", URL: "https://i.imgflip.com/1otk96.jpg"},
	{Name: "thinking_hard.jpg", URL: "https://i.imgflip.com/1h7in3.jpg"},
	{Name: "hold_my_beer.jpg", URL: "https://i.imgflip.com/1yxkcp.jpg"},
	{Name: "pointing_man.jpg", URL: "https://i.imgflip.com/2wifvo.jpg"},
	{Name: "thanos_snap.jpg", URL: "https://i.imgflip.com/28j0te.jpg"},
	{Name: "elmo_fire.jpg", URL: "https://i.imgflip.com/21uy0f.jpg"},
	{Name: "fine_dog.jpg", URL: "https://i.imgflip.com/wxica.jpg"},
	{Name: "cold_stare.jpg", URL: "https://i.imgflip.com/26am.jpg"},
	{Name: "pepe_comfy.jpg", URL: "https://i.imgflip.com/3pnmg.jpg"},
}

// Default returns the built-in catalog.
func Default() *model.Catalog {
	c, err := model.NewCatalog(defaultEntries)
	if err != nil {
		panic("catalog: invalid built-in catalog: " + err.Error())
	}
	return c
}
