// Package layout clusters positioned word tokens into phrases.
//
// A drawing's text layer yields single words. Annotations such as
// "100 LV TRAY @3000" only become readable once the words printed on one
// line are joined again:
//
//	d := layout.NewPhraseDetector()
//	phrases := d.Detect(tokens)
//
// Tokens are visited top to bottom, then left to right. A token joins the
// current phrase when its Y differs from the phrase anchor by less than
// LineTolerance and it starts less than GapTolerance past the phrase end;
// otherwise it starts a new phrase. Both tolerances are in page units and can be set
// through [PhraseConfig]:
//
//	cfg := layout.DefaultPhraseConfig()
//	cfg.GapTolerance = 20
//	d := layout.NewPhraseDetectorWithConfig(cfg)
//
// [PhraseDetector.PageText] joins the phrases one per line. The scale
// resolver searches that text for the title block ratio and sheet size.
package layout
