package ops

import "fmt"

// EmitKernel returns the C statement computing target from the already
// index-resolved per-input access expressions in inputAccess. Callers
// (the code emitter) are responsible for the surrounding loop nest and for
// producing the index expressions themselves; EmitKernel only knows how to
// turn input values into an output value for one operator.
//
// For elementwise unary/binary ops and the identity-copy kinds (Reshape,
// Output) the result is a single assignment. ReduceSum and MatMul return
// the innermost accumulation statement; the emitter wraps it in the
// reduction/contraction loop nest described in the code emitter design.
func (op Op) EmitKernel(target string, inputAccess []string) string {
	switch op.Kind {
	case Sin:
		return fmt.Sprintf("%s = sinf(%s);", target, inputAccess[0])
	case Abs:
		return fmt.Sprintf("%s = fabsf(%s);", target, inputAccess[0])
	case Sqrt:
		return fmt.Sprintf("%s = sqrtf(%s);", target, inputAccess[0])
	case Square:
		return fmt.Sprintf("%s = (%s) * (%s);", target, inputAccess[0], inputAccess[0])
	case Exp:
		return fmt.Sprintf("%s = expf(%s);", target, inputAccess[0])
	case Log:
		return fmt.Sprintf("%s = logf(%s);", target, inputAccess[0])
	case Add:
		return fmt.Sprintf("%s = %s + %s;", target, inputAccess[0], inputAccess[1])
	case Sub:
		return fmt.Sprintf("%s = %s - %s;", target, inputAccess[0], inputAccess[1])
	case Mul:
		return fmt.Sprintf("%s = %s * %s;", target, inputAccess[0], inputAccess[1])
	case Div:
		return fmt.Sprintf("%s = %s / (%s + 1e-9f);", target, inputAccess[0], inputAccess[1])
	case Min:
		return fmt.Sprintf("%s = fminf(%s, %s);", target, inputAccess[0], inputAccess[1])
	case Max:
		return fmt.Sprintf("%s = fmaxf(%s, %s);", target, inputAccess[0], inputAccess[1])
	case Pow:
		return fmt.Sprintf("%s = powf(%s, %s);", target, inputAccess[0], inputAccess[1])
	case Reshape, Output, Transpose, Split:
		return fmt.Sprintf("%s = %s;", target, inputAccess[0])
	case ReduceSum:
		return fmt.Sprintf("%s += %s;", target, inputAccess[0])
	case MatMul:
		return fmt.Sprintf("%s += %s * %s;", target, inputAccess[0], inputAccess[1])
	default:
		return fmt.Sprintf("/* unsupported op %s */", op.Kind)
	}
}
