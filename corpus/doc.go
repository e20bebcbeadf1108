// Package corpus loads the hymn corpus from its flat text source.
//
// The source is a sequence of records, each introduced by a header line
// and a title line and followed by lyric lines:
//
//	# GHS 25
//	Title: Amazing Grace
//	Amazing grace! How sweet the sound
//	That saved a wretch like me!
//
// Leading and trailing whitespace on every line is insignificant and blank
// lines are separators, not content. A record is kept only if both its
// number and title were seen before it was finalized; anything else is
// dropped. Duplicate numbers follow the last-writer-wins policy of
// core.NewCorpus.
package corpus
