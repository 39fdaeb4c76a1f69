// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package procrt

import (
	"code.hybscloud.com/kont"
)

// Reify converts a Cont-world proc body to Expr-world. The result can be
// driven with kont.StepExpr, or resumed with a *kont.Suspension, the way
// ExprGlue drives a proc's activation (context.go).
func Reify[A any](m kont.Eff[A]) kont.Expr[A] {
	return kont.Reify(m)
}

// Reflect converts an Expr-world proc body to Cont-world.
func Reflect[A any](m kont.Expr[A]) kont.Eff[A] {
	return kont.Reflect(m)
}
