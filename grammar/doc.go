// Package grammar reads cable containment annotations from drawing text.
//
// A drawing label such as "NEW 100 ELV, 100 LV AND 50 FA TRAY @12500" is
// turned into one [model.TrayEntry] per size and type it names. Text is
// normalised (NFKC, upper case, single spaces) and then offered to an ordered
// list of [Matcher] values; the first matcher that yields at least one valid
// entry wins:
//
//   - [CombinedMatcher] - "<size> <type>" repeated, with TRAY/LADDER/BASKET
//   - [EqualsMatcher] - "<type> [CABLE] TRAY = <size>MM"
//   - [LadderMatcher] - "[SUB] LADDER = <size>MM", always SUB
//
// Height ("@3000" or "@3M") and new/existing status are read once per phrase
// and shared by every entry it produces. Unmarked phrases take their status
// from a [StatusPolicy], and the entries are flagged as defaulted.
//
// Text that matches nothing is not an error; most drawing text is not a
// containment label.
//
// Drop labels (CCTV, cabinets, columns) are read by [Grammar.ParseDrop].
package grammar
