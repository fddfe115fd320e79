//go:build !js_eval

package statedef

// NewJSEvaluator is unavailable without the js_eval build tag and returns
// nil; stores report ErrEngineUnavailable for JS expressions.
func NewJSEvaluator(...JSEvaluatorOption) Evaluator {
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}
