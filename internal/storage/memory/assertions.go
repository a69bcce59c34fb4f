package memory

import (
	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/account"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/category"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/report"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/transaction"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	_ transaction.Repo   = (*Store)(nil)
	_ transaction.Writer = (*Store)(nil)
	_ report.Repo        = (*Store)(nil)
	_ account.Repo       = (*Store)(nil)
	_ account.Writer     = (*Store)(nil)
	_ category.Repo      = (*Store)(nil)
	_ category.Writer    = (*Store)(nil)
)
