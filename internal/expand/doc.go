// Package expand implements trigger expansion: short tokens typed
// before the cursor are matched against an ordered rule list and
// rewritten into longer snippets, with the cursor repositioned into
// the inserted text where that helps.
//
// A rule's pattern is tested case-insensitively against the word
// before the cursor and fires only when the match ends at the cursor,
// so the consumed span is exactly the matched text. Builtin rules come
// in two catalogs; additional rules load from JSON packs or scripts.
package expand
