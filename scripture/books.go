package scripture

import "strings"

// knownBooks holds lowercase book names and common abbreviations. Numbered
// books appear without their numeral since the numeral is lexed separately.
// Only chapter-only references consult this list.
var knownBooks = map[string]struct{}{}

func init() {
	for _, name := range strings.Fields(`
		genesis gen exodus exod ex leviticus lev numbers num deuteronomy deut
		joshua josh judges judg ruth samuel sam kings kgs chronicles chron chr
		ezra nehemiah neh esther esth job psalm psalms ps psa proverbs prov
		ecclesiastes eccl song isaiah isa jeremiah jer lamentations lam
		ezekiel ezek daniel dan hosea hos joel amos obadiah obad jonah micah
		mic nahum nah habakkuk hab zephaniah zeph haggai hag zechariah zech
		malachi mal
		matthew matt mark luke john acts romans rom corinthians cor
		galatians gal ephesians eph philippians phil colossians col
		thessalonians thess timothy tim titus philemon phlm hebrews heb
		james jas peter pet jude revelation rev
	`) {
		knownBooks[name] = struct{}{}
	}
}

// IsKnownBook reports whether name is a recognized book name or abbreviation.
func IsKnownBook(name string) bool {
	_, ok := knownBooks[strings.ToLower(name)]
	return ok
}
