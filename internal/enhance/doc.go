// Package enhance turns plain generated documentation pages into enhanced
// ones: MathJax typeset configuration in the head, copy buttons on code
// blocks, bound in-page anchors and scroll containers around wide tables.
//
// Pages are html.Node trees. Apply mutates the tree structurally and
// returns a Page whose controllers (CopyButton, Navigator) own the dynamic
// behavior. Platform effects reach the outside world only through the
// Clipboard and Viewport interfaces and the injected clock, which keeps
// every behavior deterministic under test.
package enhance
