package service

import (
	"context"
	"errors"
	"fmt"

	"cafehenola/internal/apierror"
	"cafehenola/internal/dto"
	"cafehenola/internal/fifo"
	"cafehenola/internal/model"
	"cafehenola/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RetiroInventario asks for Cantidad QQ of one product out of a client's lots.
type RetiroInventario struct {
	ClienteID  uuid.UUID
	ProductoID uuid.UUID
	Cantidad   decimal.Decimal
	Sacos      int
	Referencia model.Referencia
	Nota       string
}

// IngresoInventario credits a client's stock. NuevoLote forces a fresh lot
// instead of topping up the newest one.
type IngresoInventario struct {
	ClienteID  uuid.UUID
	ProductoID uuid.UUID
	Cantidad   decimal.Decimal
	Sacos      int
	Referencia model.Referencia
	Nota       string
	NuevoLote  bool
}

// AjusteInventario applies a signed change to stock already recorded under
// Referencia: positive credits, negative withdraws oldest lot first.
type AjusteInventario struct {
	ClienteID  uuid.UUID
	ProductoID uuid.UUID
	Delta      decimal.Decimal
	DeltaSacos int
	Referencia model.Referencia
	Nota       string
}

// InventarioService owns the lot balances. The Tx methods are building blocks
// for the other services and run inside the caller's transaction.
type InventarioService interface {
	RetirarTx(ctx context.Context, tx *gorm.DB, r RetiroInventario) ([]model.MovimientoInventario, error)
	AcreditarTx(ctx context.Context, tx *gorm.DB, i IngresoInventario) (*model.MovimientoInventario, error)
	// RevertirTx voids every live movement of ref and restores the lots.
	RevertirTx(ctx context.Context, tx *gorm.DB, ref model.Referencia) error
	AjustarDeltaTx(ctx context.Context, tx *gorm.DB, a AjusteInventario) error

	Saldo(ctx context.Context, clienteID, productoID uuid.UUID) (*dto.SaldoInventarioResponse, error)
	ListarLotes(ctx context.Context, clienteID uuid.UUID, productoID *uuid.UUID) ([]dto.LoteResponse, error)
	ListarMovimientos(ctx context.Context, f dto.InventarioFilter) ([]dto.MovimientoInventarioResponse, error)
}

type inventarioService struct {
	repo      repository.InventarioRepository
	secuencia repository.SecuenciaRepository
}

func NewInventarioService(repo repository.InventarioRepository, secuencia repository.SecuenciaRepository) InventarioService {
	return &inventarioService{repo: repo, secuencia: secuencia}
}

// ── RetirarTx ─────────────────────────────────────────────────────────────────
//  1. Lock every lot of (cliente, producto)
//  2. Reject when their total cannot cover the request, before any write
//  3. Allocate oldest first and write one Salida movement per lot touched

func (s *inventarioService) RetirarTx(ctx context.Context, tx *gorm.DB, r RetiroInventario) ([]model.MovimientoInventario, error) {
	if !r.Cantidad.IsPositive() {
		return nil, apierror.Validation("la cantidad a retirar debe ser mayor a cero")
	}
	lotes, err := s.repo.LockLotesTx(ctx, tx, r.ClienteID, r.ProductoID)
	if err != nil {
		return nil, err
	}

	registros := make([]fifo.Record, 0, len(lotes))
	porID := make(map[uuid.UUID]*model.Lote, len(lotes))
	for i := range lotes {
		l := &lotes[i]
		porID[l.ID] = l
		registros = append(registros, fifo.Record{ID: l.ID, Secuencia: l.Secuencia, Disponible: l.Cantidad})
	}

	res, err := fifo.Allocate(r.Cantidad, registros)
	if err != nil {
		var short *fifo.ShortfallError
		if errors.As(err, &short) {
			log.Debug().Str("cliente_id", r.ClienteID.String()).
				Str("solicitado", short.Solicitado.String()).
				Str("disponible", short.Disponible.String()).
				Msg("retiro rechazado por inventario insuficiente")
			return nil, apierror.Insufficient(apierror.CodeInventarioInsuficiente, err,
				"Inventario insuficiente: disponible %s QQ, solicitado %s QQ",
				short.Disponible.String(), short.Solicitado.String())
		}
		return nil, err
	}

	sacos := repartirSacos(r.Sacos, res, porID)
	movs := make([]model.MovimientoInventario, 0, len(res.Asignaciones))
	for i, a := range res.Asignaciones {
		l := porID[a.ID]
		l.Cantidad = a.Restante
		l.Sacos -= sacos[i]
		if err := s.repo.UpdateLoteTx(ctx, tx, l); err != nil {
			return nil, err
		}
		mov := model.MovimientoInventario{
			LoteID:         l.ID,
			ClienteID:      r.ClienteID,
			ProductoID:     r.ProductoID,
			Tipo:           model.MovSalida,
			TipoOriginal:   model.MovSalida,
			Cantidad:       a.Cantidad,
			Sacos:          sacos[i],
			Nota:           r.Nota,
			ReferenciaTipo: r.Referencia.Tipo,
			ReferenciaID:   r.Referencia.ID,
		}
		if err := s.repo.CreateMovimientoTx(ctx, tx, &mov); err != nil {
			return nil, err
		}
		movs = append(movs, mov)
	}
	return movs, nil
}

// repartirSacos spreads the requested sacks over the allocations in proportion
// to the QQ taken, never taking more sacks than a lot holds. What a capped lot
// cannot give moves on to the other lots; sacks no lot holds are not taken, so
// the sum may fall short of total.
func repartirSacos(total int, res fifo.Result, lotes map[uuid.UUID]*model.Lote) []int {
	out := make([]int, len(res.Asignaciones))
	if total <= 0 {
		return out
	}
	restantes := total
	for i, a := range res.Asignaciones {
		n := restantes
		if i < len(res.Asignaciones)-1 {
			n = int(decimal.NewFromInt(int64(total)).Mul(a.Cantidad).Div(res.Solicitado).IntPart())
		}
		n = max(min(n, restantes, lotes[a.ID].Sacos), 0)
		out[i] = n
		restantes -= n
	}
	for i, a := range res.Asignaciones {
		if restantes == 0 {
			break
		}
		if extra := min(restantes, lotes[a.ID].Sacos-out[i]); extra > 0 {
			out[i] += extra
			restantes -= extra
		}
	}
	return out
}

// sacosRetirados sums the sacks the movements actually took.
func sacosRetirados(movs []model.MovimientoInventario) int {
	n := 0
	for _, m := range movs {
		n += m.Sacos
	}
	return n
}

// ── AcreditarTx ───────────────────────────────────────────────────────────────

func (s *inventarioService) AcreditarTx(ctx context.Context, tx *gorm.DB, in IngresoInventario) (*model.MovimientoInventario, error) {
	if !in.Cantidad.IsPositive() {
		return nil, apierror.Validation("la cantidad a ingresar debe ser mayor a cero")
	}

	var lote *model.Lote
	if !in.NuevoLote {
		lotes, err := s.repo.LockLotesTx(ctx, tx, in.ClienteID, in.ProductoID)
		if err != nil {
			return nil, err
		}
		if len(lotes) > 0 {
			lote = &lotes[len(lotes)-1]
		}
	}

	if lote == nil {
		seq, err := s.secuencia.SiguienteTx(ctx, tx, repository.SecLotes)
		if err != nil {
			return nil, err
		}
		lote = &model.Lote{
			ClienteID:  in.ClienteID,
			ProductoID: in.ProductoID,
			Cantidad:   in.Cantidad,
			Sacos:      in.Sacos,
			Secuencia:  seq,
		}
		if err := s.repo.CreateLoteTx(ctx, tx, lote); err != nil {
			return nil, err
		}
	} else {
		lote.Cantidad = lote.Cantidad.Add(in.Cantidad)
		lote.Sacos += in.Sacos
		if err := s.repo.UpdateLoteTx(ctx, tx, lote); err != nil {
			return nil, err
		}
	}

	mov := &model.MovimientoInventario{
		LoteID:         lote.ID,
		ClienteID:      in.ClienteID,
		ProductoID:     in.ProductoID,
		Tipo:           model.MovEntrada,
		TipoOriginal:   model.MovEntrada,
		Cantidad:       in.Cantidad,
		Sacos:          in.Sacos,
		Nota:           in.Nota,
		ReferenciaTipo: in.Referencia.Tipo,
		ReferenciaID:   in.Referencia.ID,
	}
	if err := s.repo.CreateMovimientoTx(ctx, tx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ── RevertirTx ────────────────────────────────────────────────────────────────
//  1. Net the live movements of ref per lot
//  2. Give back what ref took out of each lot
//  3. Take back what ref credited, from the same lot while it still holds it
//  4. Whatever those lots no longer hold comes out of the client's other lots,
//     oldest first; when the client holds too little nothing is written
//
// Voided movements keep TipoOriginal.

func (s *inventarioService) RevertirTx(ctx context.Context, tx *gorm.DB, ref model.Referencia) error {
	movs, err := s.repo.MovimientosVivosTx(ctx, tx, ref)
	if err != nil {
		return err
	}
	if len(movs) == 0 {
		return nil
	}
	clienteID, productoID := movs[0].ClienteID, movs[0].ProductoID

	netos := make(map[uuid.UUID]*ajusteLote)
	orden := make([]uuid.UUID, 0, len(movs))
	ids := make([]uuid.UUID, 0, len(movs))
	for _, m := range movs {
		d, ok := netos[m.LoteID]
		if !ok {
			d = &ajusteLote{cantidad: decimal.Zero}
			netos[m.LoteID] = d
			orden = append(orden, m.LoteID)
		}
		d.sumar(m)
		ids = append(ids, m.ID)
	}

	lotes, err := s.repo.LockLotesTx(ctx, tx, clienteID, productoID)
	if err != nil {
		return err
	}
	porID := make(map[uuid.UUID]*model.Lote, len(lotes))
	for i := range lotes {
		porID[lotes[i].ID] = &lotes[i]
	}
	for _, id := range orden {
		if _, ok := porID[id]; !ok {
			return fmt.Errorf("lote %s de la referencia %s no encontrado", id, ref.ID)
		}
	}

	for _, id := range orden {
		if d := netos[id]; d.cantidad.IsPositive() {
			l := porID[id]
			l.Cantidad = l.Cantidad.Add(d.cantidad)
			l.Sacos += d.sacos
		}
	}
	faltante := decimal.Zero
	for _, id := range orden {
		d := netos[id]
		if !d.cantidad.IsNegative() {
			continue
		}
		l := porID[id]
		quitar := decimal.Min(d.cantidad.Neg(), l.Cantidad)
		l.Cantidad = l.Cantidad.Sub(quitar)
		l.Sacos = max(l.Sacos+d.sacos, 0)
		faltante = faltante.Add(d.cantidad.Neg().Sub(quitar))
	}

	var compensacion []fifo.Allocation
	if faltante.IsPositive() {
		registros := make([]fifo.Record, 0, len(lotes))
		for _, l := range lotes {
			registros = append(registros, fifo.Record{ID: l.ID, Secuencia: l.Secuencia, Disponible: l.Cantidad})
		}
		res, err := fifo.Allocate(faltante, registros)
		if err != nil {
			var short *fifo.ShortfallError
			if errors.As(err, &short) {
				return apierror.Insufficient(apierror.CodeInventarioInsuficiente, err,
					"No se puede anular: faltan %s QQ en el inventario del cliente", short.Faltante().String())
			}
			return err
		}
		for _, a := range res.Asignaciones {
			porID[a.ID].Cantidad = a.Restante
		}
		compensacion = res.Asignaciones
	}

	for i := range lotes {
		if err := s.repo.UpdateLoteTx(ctx, tx, &lotes[i]); err != nil {
			return err
		}
	}
	if err := s.repo.AnularMovimientosTx(ctx, tx, ids); err != nil {
		return err
	}
	for _, a := range compensacion {
		mov := model.MovimientoInventario{
			LoteID:         a.ID,
			ClienteID:      clienteID,
			ProductoID:     productoID,
			Tipo:           model.MovSalida,
			TipoOriginal:   model.MovSalida,
			Cantidad:       a.Cantidad,
			Nota:           "compensación por anulación",
			ReferenciaTipo: ref.Tipo,
			ReferenciaID:   ref.ID,
		}
		if err := s.repo.CreateMovimientoTx(ctx, tx, &mov); err != nil {
			return err
		}
	}
	log.Info().Str("referencia_tipo", ref.Tipo).Str("referencia_id", ref.ID.String()).
		Int("movimientos", len(ids)).Int("compensaciones", len(compensacion)).
		Msg("movimientos de inventario anulados")
	return nil
}

// ajusteLote is the net effect of one reference on one lot: positive when the
// reference took stock out of it.
type ajusteLote struct {
	cantidad decimal.Decimal
	sacos    int
}

func (d *ajusteLote) sumar(m model.MovimientoInventario) {
	switch m.Tipo {
	case model.MovSalida:
		d.cantidad = d.cantidad.Add(m.Cantidad)
		d.sacos += m.Sacos
	case model.MovEntrada:
		d.cantidad = d.cantidad.Sub(m.Cantidad)
		d.sacos -= m.Sacos
	}
}

// ── AjustarDeltaTx ────────────────────────────────────────────────────────────
// A positive delta first goes back to the lots the reference drew from, newest
// withdrawal first; only the rest becomes a plain credit. A negative delta is a
// FIFO withdrawal.

func (s *inventarioService) AjustarDeltaTx(ctx context.Context, tx *gorm.DB, a AjusteInventario) error {
	switch {
	case a.Delta.IsPositive():
		restante, sacos, err := s.devolverTx(ctx, tx, a)
		if err != nil || !restante.IsPositive() {
			return err
		}
		_, err = s.AcreditarTx(ctx, tx, IngresoInventario{
			ClienteID:  a.ClienteID,
			ProductoID: a.ProductoID,
			Cantidad:   restante,
			Sacos:      sacos,
			Referencia: a.Referencia,
			Nota:       a.Nota,
		})
		return err
	case a.Delta.IsNegative():
		_, err := s.RetirarTx(ctx, tx, RetiroInventario{
			ClienteID:  a.ClienteID,
			ProductoID: a.ProductoID,
			Cantidad:   a.Delta.Neg(),
			Sacos:      max(-a.DeltaSacos, 0),
			Referencia: a.Referencia,
			Nota:       a.Nota,
		})
		return err
	}
	return nil
}

// devolverTx returns the part of a positive delta it could not give back to
// the lots the reference still holds stock from, with the sacks left over.
func (s *inventarioService) devolverTx(ctx context.Context, tx *gorm.DB, a AjusteInventario) (decimal.Decimal, int, error) {
	restante, sacos := a.Delta, max(a.DeltaSacos, 0)

	movs, err := s.repo.MovimientosVivosTx(ctx, tx, a.Referencia)
	if err != nil {
		return restante, sacos, err
	}
	netos := make(map[uuid.UUID]*ajusteLote)
	var orden []uuid.UUID
	for i := len(movs) - 1; i >= 0; i-- {
		m := movs[i]
		d, ok := netos[m.LoteID]
		if !ok {
			d = &ajusteLote{cantidad: decimal.Zero}
			netos[m.LoteID] = d
			orden = append(orden, m.LoteID)
		}
		d.sumar(m)
	}
	var ids []uuid.UUID
	for _, id := range orden {
		if netos[id].cantidad.IsPositive() {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return restante, sacos, nil
	}
	lotes, err := s.repo.LockLotesByIDTx(ctx, tx, ids)
	if err != nil {
		return restante, sacos, err
	}
	porID := make(map[uuid.UUID]*model.Lote, len(lotes))
	for i := range lotes {
		porID[lotes[i].ID] = &lotes[i]
	}

	for _, id := range ids {
		l, ok := porID[id]
		if !ok || !restante.IsPositive() {
			continue
		}
		dar := decimal.Min(restante, netos[id].cantidad)
		n := min(sacos, max(netos[id].sacos, 0))
		l.Cantidad = l.Cantidad.Add(dar)
		l.Sacos += n
		if err := s.repo.UpdateLoteTx(ctx, tx, l); err != nil {
			return restante, sacos, err
		}
		mov := model.MovimientoInventario{
			LoteID:         l.ID,
			ClienteID:      a.ClienteID,
			ProductoID:     a.ProductoID,
			Tipo:           model.MovEntrada,
			TipoOriginal:   model.MovEntrada,
			Cantidad:       dar,
			Sacos:          n,
			Nota:           a.Nota,
			ReferenciaTipo: a.Referencia.Tipo,
			ReferenciaID:   a.Referencia.ID,
		}
		if err := s.repo.CreateMovimientoTx(ctx, tx, &mov); err != nil {
			return restante, sacos, err
		}
		restante = restante.Sub(dar)
		sacos -= n
	}
	return restante, sacos, nil
}

// ── Read side ─────────────────────────────────────────────────────────────────

func (s *inventarioService) Saldo(ctx context.Context, clienteID, productoID uuid.UUID) (*dto.SaldoInventarioResponse, error) {
	lotes, err := s.repo.ListLotes(ctx, clienteID, &productoID)
	if err != nil {
		return nil, fmt.Errorf("listar lotes: %w", err)
	}
	resp := &dto.SaldoInventarioResponse{
		ClienteID:  clienteID.String(),
		ProductoID: productoID.String(),
		Cantidad:   decimal.Zero,
	}
	for _, l := range lotes {
		resp.Cantidad = resp.Cantidad.Add(l.Cantidad)
		resp.Sacos += l.Sacos
		if l.Cantidad.IsPositive() {
			resp.Lotes++
		}
	}
	return resp, nil
}

func (s *inventarioService) ListarLotes(ctx context.Context, clienteID uuid.UUID, productoID *uuid.UUID) ([]dto.LoteResponse, error) {
	lotes, err := s.repo.ListLotes(ctx, clienteID, productoID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LoteResponse, 0, len(lotes))
	for _, l := range lotes {
		item := dto.LoteResponse{
			ID:         l.ID.String(),
			ClienteID:  l.ClienteID.String(),
			ProductoID: l.ProductoID.String(),
			Cantidad:   l.Cantidad,
			Sacos:      l.Sacos,
			Secuencia:  l.Secuencia,
			CreatedAt:  l.CreatedAt,
		}
		if l.Producto != nil {
			item.Producto = l.Producto.Nombre
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, f dto.InventarioFilter) ([]dto.MovimientoInventarioResponse, error) {
	filter := repository.MovimientoFilter{ReferenciaTipo: f.ReferenciaTipo, Limit: f.Limit}
	if f.ClienteID != "" {
		id, err := parseID("cliente_id", f.ClienteID)
		if err != nil {
			return nil, err
		}
		filter.ClienteID = &id
	}
	if f.ProductoID != "" {
		id, err := parseID("producto_id", f.ProductoID)
		if err != nil {
			return nil, err
		}
		filter.ProductoID = &id
	}
	movs, err := s.repo.ListMovimientos(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimientoInventarioResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, movimientoToResponse(m))
	}
	return out, nil
}

func movimientoToResponse(m model.MovimientoInventario) dto.MovimientoInventarioResponse {
	return dto.MovimientoInventarioResponse{
		ID:             m.ID.String(),
		LoteID:         m.LoteID.String(),
		Tipo:           m.Tipo,
		TipoOriginal:   m.TipoOriginal,
		Cantidad:       m.Cantidad,
		Sacos:          m.Sacos,
		Nota:           m.Nota,
		ReferenciaTipo: m.ReferenciaTipo,
		ReferenciaID:   m.ReferenciaID.String(),
		CreatedAt:      m.CreatedAt,
	}
}
