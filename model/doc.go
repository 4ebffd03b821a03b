// Package model defines the data carried through a containment takeoff.
//
// Values flow strictly forward through the pipeline: positioned word tokens
// ([PositionedToken]) are clustered into [Phrase] values, parsed into
// [TrayAnnotation] and [DropAnnotation] values, and assembled together with
// [ColouredLine] values into [TrayRun] values. The [Result] aggregate owns the
// runs, the per-size [FittingSummary], reviewer [Question] values and
// diagnostics. [UserInputs] and [CableSummary] describe the cable estimate
// computed from a result.
//
// # Guarantees
//
//   - every TrayRun.SizeMm is in [TraySizes]
//   - TrayRun.WholesalerLengths == [WholesalerLengths](TrayRun.LengthM)
//   - couplers per run == [Couplers](TrayRun.WholesalerLengths)
//
// # Geometry
//
// [Point] and [BBox] are in top-down page coordinates. [Matrix] is a PDF
// affine transform used while walking content streams.
package model
