package urilaga

// badges maps an author tag to the paw badge shown next to their images.
var badges = map[string]string{
	"Aca":  "paw1.png",
	"Alba": "paw2.png",
}

// BadgeFor returns the badge filename for author, or nil when the author has
// no badge. Matching is exact and case-sensitive.
func BadgeFor(author string) *string {
	b, ok := badges[author]
	if !ok {
		return nil
	}
	return &b
}
