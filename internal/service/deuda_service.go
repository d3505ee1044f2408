package service

import (
	"context"
	"errors"
	"sort"
	"time"

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

// DeudaService settles loans and advances. Each operation names the Cartera it
// works on; the two pools never see each other's rows.
type DeudaService interface {
	RegistrarMovimiento(ctx context.Context, c model.Cartera, req dto.RegistrarMovimientoDeudaRequest) (*dto.MovimientoDeudaResponse, error)
	// AnularMovimiento voids every row written by the request pagoID.
	AnularMovimiento(ctx context.Context, c model.Cartera, pagoID uuid.UUID) error
	EstadoCuenta(ctx context.Context, c model.Cartera, clienteID uuid.UUID) (*dto.EstadoCuentaResponse, error)
}

type deudaService struct {
	repo      repository.DeudaRepository
	catalogo  repository.CatalogoRepository
	secuencia repository.SecuenciaRepository
	locker    Locker
	ahora     func() time.Time
}

func NewDeudaService(
	repo repository.DeudaRepository,
	catalogo repository.CatalogoRepository,
	secuencia repository.SecuenciaRepository,
	locker Locker,
) DeudaService {
	return &deudaService{
		repo:      repo,
		catalogo:  catalogo,
		secuencia: secuencia,
		locker:    locker,
		ahora:     time.Now,
	}
}

var (
	cien    = decimal.NewFromInt(100)
	treinta = decimal.NewFromInt(30)
)

// posicion is the derived balance of one debt.
type posicion struct {
	deuda *model.Deuda
	// saldo is what the FIFO payment walk settles: principal plus charges minus
	// payments for loans, outstanding capital for advances.
	saldo   decimal.Decimal
	interes decimal.Decimal
}

// operacion carries one request through the transaction.
type operacion struct {
	c       model.Cartera
	req     dto.RegistrarMovimientoDeudaRequest
	tipo    string
	cliente uuid.UUID
	deudaID *uuid.UUID
	monto   decimal.Decimal
	fecha   time.Time
	pagoID  uuid.UUID
	resp    *dto.MovimientoDeudaResponse
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────

func (s *deudaService) RegistrarMovimiento(ctx context.Context, c model.Cartera, req dto.RegistrarMovimientoDeudaRequest) (*dto.MovimientoDeudaResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	tipo, ok := c.NormalizarTipo(req.Tipo)
	if !ok {
		return nil, apierror.Validation("tipo de movimiento %q no válido para %s", req.Tipo, c.Nombre)
	}
	monto := req.Monto.Round(2)
	if !monto.IsPositive() {
		return nil, apierror.Validation("el monto debe ser mayor a cero")
	}
	if req.Tasa != nil && (req.Tasa.IsNegative() || req.Tasa.GreaterThan(cien)) {
		return nil, apierror.Validation("la tasa debe estar entre 0 y 100")
	}
	if req.Dias != nil && *req.Dias < 0 {
		return nil, apierror.Validation("los días no pueden ser negativos")
	}

	op := &operacion{
		c:       c,
		req:     req,
		tipo:    tipo,
		cliente: clienteID,
		monto:   monto,
		fecha:   s.ahora(),
		pagoID:  uuid.New(),
	}
	if req.Fecha != nil && !req.Fecha.IsZero() {
		op.fecha = *req.Fecha
	}
	if req.DeudaID != "" {
		id, err := parseID("deuda_id", req.DeudaID)
		if err != nil {
			return nil, err
		}
		op.deudaID = &id
	}
	op.resp = &dto.MovimientoDeudaResponse{
		PagoID:     op.pagoID.String(),
		Cartera:    c.Nombre,
		Tipo:       tipo,
		Monto:      monto,
		NoAsignado: decimal.Zero,
	}

	defer bloquear(ctx, s.locker, claveCliente(clienteID))()

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.catalogo.FindClienteTx(ctx, tx, clienteID); err != nil {
			return noEncontrado(err, "cliente")
		}
		switch tipo {
		case c.Desembolso:
			return s.desembolsar(ctx, tx, op)
		case c.Abono:
			return s.abonar(ctx, tx, op)
		case c.AbonoInteres:
			return s.abonarInteres(ctx, tx, op)
		case c.CargoInteres, c.Aumento:
			return s.cargar(ctx, tx, op)
		}
		return apierror.Validation("tipo de movimiento %q no soportado", tipo)
	})
	if txErr != nil {
		if errors.Is(txErr, apierror.ErrExceedsPendingDebt) || errors.Is(txErr, apierror.ErrExceedsPendingInterest) {
			log.Debug().Err(txErr).Str("cliente_id", clienteID.String()).Str("tipo", tipo).Msg("movimiento de deuda rechazado")
		}
		return nil, txErr
	}
	log.Info().Str("pago_id", op.pagoID.String()).Str("cartera", c.Nombre).Str("tipo", tipo).
		Str("cliente_id", clienteID.String()).Str("monto", monto.String()).
		Int("aplicaciones", len(op.resp.Aplicaciones)).Msg("movimiento de deuda registrado")
	return op.resp, nil
}

// desembolsar opens a new debt and lets it absorb the client's unassigned
// credit, oldest first.
func (s *deudaService) desembolsar(ctx context.Context, tx *gorm.DB, op *operacion) error {
	seq, err := s.secuencia.SiguienteTx(ctx, tx, op.c.TablaDeudas)
	if err != nil {
		return err
	}
	deuda := &model.Deuda{
		ClienteID: op.cliente,
		Principal: op.monto,
		Tasa:      decimal.Zero,
		Estado:    model.DeudaActivo,
		Fecha:     op.fecha,
		Secuencia: seq,
		Nota:      op.req.Nota,
	}
	if op.req.Tasa != nil {
		deuda.Tasa = *op.req.Tasa
	}
	if err := s.repo.CreateDeudaTx(ctx, tx, op.c, deuda); err != nil {
		return err
	}
	if err := s.escribir(ctx, tx, op.c, &model.MovimientoDeuda{
		DeudaID:   deuda.ID,
		ClienteID: op.cliente,
		PagoID:    op.pagoID,
		Tipo:      op.tipo,
		Monto:     op.monto,
		Tasa:      op.req.Tasa,
		Dias:      op.req.Dias,
		Fecha:     op.fecha,
		Nota:      op.req.Nota,
	}); err != nil {
		return err
	}
	deudaID := deuda.ID.String()
	op.resp.DeudaID = &deudaID

	creditos, err := s.repo.LockCreditosTx(ctx, tx, op.c, op.cliente)
	if err != nil {
		return err
	}
	saldo := deuda.Principal
	for i := range creditos {
		if !saldo.IsPositive() {
			break
		}
		cr := &creditos[i]
		take := decimal.Min(saldo, cr.Disponible())
		if !take.IsPositive() {
			continue
		}
		// The absorbed payment keeps the pago_id of the request that brought it in.
		if err := s.escribir(ctx, tx, op.c, &model.MovimientoDeuda{
			DeudaID:   deuda.ID,
			ClienteID: op.cliente,
			PagoID:    cr.PagoID,
			Tipo:      op.c.Abono,
			Monto:     take,
			Fecha:     op.fecha,
			Nota:      "aplicación de crédito no asignado",
		}); err != nil {
			return err
		}
		cr.Aplicado = cr.Aplicado.Add(take)
		if !cr.Disponible().IsPositive() {
			cr.Estado = model.CreditoAplicado
		}
		if err := s.repo.UpdateCreditoTx(ctx, tx, cr); err != nil {
			return err
		}
		saldo = saldo.Sub(take)
		op.resp.Aplicaciones = append(op.resp.Aplicaciones, dto.AplicacionResponse{
			DeudaID:       deuda.ID.String(),
			Tipo:          op.c.Abono,
			Monto:         take,
			SaldoRestante: saldo,
			EstadoDeuda:   model.DeudaActivo,
		})
	}
	if saldo.IsZero() {
		deuda.Estado = model.DeudaCompletado
		if err := s.repo.UpdateDeudaEstadoTx(ctx, tx, op.c, deuda.ID, deuda.Estado); err != nil {
			return err
		}
		op.resp.Aplicaciones[len(op.resp.Aplicaciones)-1].EstadoDeuda = deuda.Estado
	}
	return nil
}

// ── abonar ────────────────────────────────────────────────────────────────────
// Walks the client's active debts oldest first. A debt whose saldo is covered
// is Completado and the rest of the payment moves on to the next one.

func (s *deudaService) abonar(ctx context.Context, tx *gorm.DB, op *operacion) error {
	posiciones, err := s.posicionesTx(ctx, tx, op.c, op.cliente, op.fecha, model.DeudaActivo)
	if err != nil {
		return err
	}
	if op.deudaID != nil {
		posiciones, err = filtrarDeuda(posiciones, *op.deudaID)
		if err != nil {
			return err
		}
	}

	abiertas := make([]posicion, 0, len(posiciones))
	for _, p := range posiciones {
		if p.saldo.IsPositive() {
			abiertas = append(abiertas, p)
		}
	}
	if len(abiertas) == 0 {
		if op.deudaID != nil {
			return apierror.PendingDebt("la deuda indicada no tiene saldo pendiente")
		}
		return s.acreditarNoAsignado(ctx, tx, op)
	}

	res, err := s.asignar(op.monto, abiertas, func(p posicion) decimal.Decimal { return p.saldo })
	if err != nil {
		var short *fifo.ShortfallError
		if errors.As(err, &short) {
			return apierror.PendingDebt("El abono de %s excede la deuda pendiente (%s)",
				op.monto.String(), short.Disponible.String())
		}
		return err
	}
	return s.aplicar(ctx, tx, op, res, abiertas, op.tipo, func(p posicion, a fifo.Allocation) bool {
		return a.Restante.IsZero()
	})
}

// abonarInteres pays pending interest only. Loans settle it from explicit
// charges; advances from interest accrued up to the payment date.
func (s *deudaService) abonarInteres(ctx context.Context, tx *gorm.DB, op *operacion) error {
	estados := []string{model.DeudaActivo}
	if op.c.InteresDevengado {
		// A fully repaid advance can still owe the interest it accrued.
		estados = append(estados, model.DeudaCompletado)
	}
	posiciones, err := s.posicionesTx(ctx, tx, op.c, op.cliente, op.fecha, estados...)
	if err != nil {
		return err
	}
	if op.deudaID != nil {
		posiciones, err = filtrarDeuda(posiciones, *op.deudaID)
		if err != nil {
			return err
		}
	}

	conInteres := make([]posicion, 0, len(posiciones))
	for _, p := range posiciones {
		if p.interes.IsPositive() {
			conInteres = append(conInteres, p)
		}
	}
	res, err := s.asignar(op.monto, conInteres, func(p posicion) decimal.Decimal { return p.interes })
	if err != nil {
		var short *fifo.ShortfallError
		if errors.As(err, &short) {
			return apierror.PendingInterest("El pago de %s excede el interés pendiente (%s)",
				op.monto.String(), short.Disponible.String())
		}
		return err
	}
	return s.aplicar(ctx, tx, op, res, conInteres, op.tipo, func(p posicion, a fifo.Allocation) bool {
		if op.c.InteresDevengado {
			return false
		}
		// Loan interest payments also lower the loan saldo.
		return p.saldo.Sub(a.Cantidad).LessThanOrEqual(decimal.Zero)
	})
}

// cargar adds an interest charge or an increase to one active debt: the one
// named in the request or else the oldest.
func (s *deudaService) cargar(ctx context.Context, tx *gorm.DB, op *operacion) error {
	deudas, err := s.repo.LockDeudasTx(ctx, tx, op.c, op.cliente, model.DeudaActivo)
	if err != nil {
		return err
	}
	var objetivo *model.Deuda
	for i := range deudas {
		if op.deudaID == nil || deudas[i].ID == *op.deudaID {
			objetivo = &deudas[i]
			break
		}
	}
	if objetivo == nil {
		if op.deudaID != nil {
			return apierror.PendingDebt("la deuda indicada no está activa")
		}
		return apierror.PendingDebt("el cliente no tiene %s activos a los que aplicar %s", op.c.Nombre, op.tipo)
	}
	if err := s.escribir(ctx, tx, op.c, &model.MovimientoDeuda{
		DeudaID:   objetivo.ID,
		ClienteID: op.cliente,
		PagoID:    op.pagoID,
		Tipo:      op.tipo,
		Monto:     op.monto,
		Tasa:      op.req.Tasa,
		Dias:      op.req.Dias,
		Fecha:     op.fecha,
		Nota:      op.req.Nota,
	}); err != nil {
		return err
	}
	id := objetivo.ID.String()
	op.resp.DeudaID = &id
	posiciones, err := s.posicionesDe(ctx, tx, op.c, []model.Deuda{*objetivo}, op.fecha)
	if err != nil {
		return err
	}
	op.resp.Aplicaciones = append(op.resp.Aplicaciones, dto.AplicacionResponse{
		DeudaID:       id,
		Tipo:          op.tipo,
		Monto:         op.monto,
		SaldoRestante: posiciones[0].saldo,
		EstadoDeuda:   objetivo.Estado,
	})
	return nil
}

func (s *deudaService) acreditarNoAsignado(ctx context.Context, tx *gorm.DB, op *operacion) error {
	seq, err := s.secuencia.SiguienteTx(ctx, tx, repository.SecCreditos)
	if err != nil {
		return err
	}
	cr := &model.CreditoNoAsignado{
		ClienteID: op.cliente,
		Cartera:   op.c.Nombre,
		PagoID:    op.pagoID,
		Monto:     op.monto,
		Aplicado:  decimal.Zero,
		Estado:    model.CreditoPendiente,
		Fecha:     op.fecha,
		Secuencia: seq,
		Nota:      op.req.Nota,
	}
	if err := s.repo.CreateCreditoTx(ctx, tx, cr); err != nil {
		return err
	}
	op.resp.NoAsignado = op.monto
	return nil
}

// asignar runs the allocator over the positions using disponible as balance.
func (s *deudaService) asignar(monto decimal.Decimal, ps []posicion, disponible func(posicion) decimal.Decimal) (fifo.Result, error) {
	registros := make([]fifo.Record, 0, len(ps))
	for _, p := range ps {
		registros = append(registros, fifo.Record{ID: p.deuda.ID, Secuencia: p.deuda.Secuencia, Disponible: disponible(p)})
	}
	return fifo.Allocate(monto, registros)
}

// aplicar writes one movement per allocation and completes the debts for which
// completa reports true.
func (s *deudaService) aplicar(ctx context.Context, tx *gorm.DB, op *operacion, res fifo.Result, ps []posicion, tipo string, completa func(posicion, fifo.Allocation) bool) error {
	porID := make(map[uuid.UUID]posicion, len(ps))
	for _, p := range ps {
		porID[p.deuda.ID] = p
	}
	for _, a := range res.Asignaciones {
		p := porID[a.ID]
		if err := s.escribir(ctx, tx, op.c, &model.MovimientoDeuda{
			DeudaID:   a.ID,
			ClienteID: op.cliente,
			PagoID:    op.pagoID,
			Tipo:      tipo,
			Monto:     a.Cantidad,
			Tasa:      op.req.Tasa,
			Dias:      op.req.Dias,
			Fecha:     op.fecha,
			Nota:      op.req.Nota,
		}); err != nil {
			return err
		}
		estado := p.deuda.Estado
		if completa(p, a) && estado == model.DeudaActivo {
			estado = model.DeudaCompletado
			if err := s.repo.UpdateDeudaEstadoTx(ctx, tx, op.c, a.ID, estado); err != nil {
				return err
			}
		}
		restante := p.saldo
		if tipo == op.c.Abono || !op.c.InteresDevengado {
			restante = p.saldo.Sub(a.Cantidad)
		}
		op.resp.Aplicaciones = append(op.resp.Aplicaciones, dto.AplicacionResponse{
			DeudaID:       a.ID.String(),
			Tipo:          tipo,
			Monto:         a.Cantidad,
			SaldoRestante: restante,
			EstadoDeuda:   estado,
		})
	}
	return nil
}

func (s *deudaService) escribir(ctx context.Context, tx *gorm.DB, c model.Cartera, m *model.MovimientoDeuda) error {
	seq, err := s.secuencia.SiguienteTx(ctx, tx, c.TablaMovimientos)
	if err != nil {
		return err
	}
	m.Secuencia = seq
	m.TipoOriginal = m.Tipo
	return s.repo.CreateMovimientoTx(ctx, tx, c, m)
}

// ── AnularMovimiento ──────────────────────────────────────────────────────────
// Only the newest request on a debt can be voided: once a later movement has
// been written against any debt this request touched, it is superseded.

func (s *deudaService) AnularMovimiento(ctx context.Context, c model.Cartera, pagoID uuid.UUID) error {
	defer bloquearDe(ctx, s.locker, func() (uuid.UUID, error) {
		return s.repo.ClienteDePago(ctx, c, pagoID)
	})()

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		movs, err := s.repo.MovimientosPagoTx(ctx, tx, c, pagoID)
		if err != nil {
			return err
		}
		credito, err := s.repo.LockCreditoPagoTx(ctx, tx, c, pagoID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			credito = nil
		}
		if len(movs) == 0 {
			if credito == nil {
				anulado, err := s.repo.PagoAnuladoTx(ctx, tx, c, pagoID)
				if err != nil {
					return err
				}
				if anulado {
					return apierror.Conflict(apierror.CodeRegistroAnulado, "el movimiento ya está anulado")
				}
				return apierror.NotFound("movimiento no encontrado")
			}
			if credito.Estado == model.CreditoAnulado {
				return apierror.Conflict(apierror.CodeRegistroAnulado, "el movimiento ya está anulado")
			}
		}

		ultima := make(map[uuid.UUID]int64)
		desembolso := make(map[uuid.UUID]bool)
		ids := make([]uuid.UUID, 0, len(movs))
		for _, m := range movs {
			if m.Secuencia > ultima[m.DeudaID] {
				ultima[m.DeudaID] = m.Secuencia
			}
			if m.TipoOriginal == c.Desembolso {
				desembolso[m.DeudaID] = true
			}
			ids = append(ids, m.ID)
		}

		tocadas := make([]uuid.UUID, 0, len(ultima))
		for id := range ultima {
			tocadas = append(tocadas, id)
		}
		sort.Slice(tocadas, func(i, j int) bool { return tocadas[i].String() < tocadas[j].String() })

		deudas := make([]model.Deuda, 0, len(tocadas))
		for _, deudaID := range tocadas {
			seq := ultima[deudaID]
			d, err := s.repo.LockDeudaTx(ctx, tx, c, deudaID)
			if err != nil {
				return noEncontrado(err, "deuda")
			}
			posterior, err := s.repo.HayPosteriorTx(ctx, tx, c, deudaID, seq, pagoID)
			if err != nil {
				return err
			}
			if posterior {
				return apierror.Conflict(apierror.CodeMovimientoSuperado,
					"El movimiento ya fue superado por movimientos posteriores; anúlelos primero")
			}
			deudas = append(deudas, *d)
		}

		if err := s.repo.AnularMovimientosTx(ctx, tx, c, ids); err != nil {
			return err
		}
		if credito != nil && credito.Estado != model.CreditoAnulado {
			credito.Estado = model.CreditoAnulado
			credito.Aplicado = decimal.Zero
			if err := s.repo.UpdateCreditoTx(ctx, tx, credito); err != nil {
				return err
			}
		}

		for i := range deudas {
			d := &deudas[i]
			if desembolso[d.ID] {
				if err := s.repo.UpdateDeudaEstadoTx(ctx, tx, c, d.ID, model.DeudaAnulado); err != nil {
					return err
				}
				continue
			}
			ps, err := s.posicionesDe(ctx, tx, c, []model.Deuda{*d}, s.ahora())
			if err != nil {
				return err
			}
			estado := model.DeudaActivo
			if !ps[0].saldo.IsPositive() {
				estado = model.DeudaCompletado
			}
			if estado != d.Estado && d.Estado != model.DeudaAnulado {
				if err := s.repo.UpdateDeudaEstadoTx(ctx, tx, c, d.ID, estado); err != nil {
					return err
				}
			}
		}
		log.Info().Str("pago_id", pagoID.String()).Str("cartera", c.Nombre).Int("movimientos", len(ids)).Msg("movimiento de deuda anulado")
		return nil
	})
}

// ── EstadoCuenta ──────────────────────────────────────────────────────────────

func (s *deudaService) EstadoCuenta(ctx context.Context, c model.Cartera, clienteID uuid.UUID) (*dto.EstadoCuentaResponse, error) {
	resp := &dto.EstadoCuentaResponse{
		ClienteID:         clienteID.String(),
		Cartera:           c.Nombre,
		Deudas:            []dto.DeudaResponse{},
		Creditos:          []dto.CreditoResponse{},
		SaldoTotal:        decimal.Zero,
		InteresTotal:      decimal.Zero,
		CreditoNoAsignado: decimal.Zero,
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ps, err := s.posicionesTx(ctx, tx, c, clienteID, s.ahora(), model.DeudaActivo, model.DeudaCompletado)
		if err != nil {
			return err
		}
		for _, p := range ps {
			resp.SaldoTotal = resp.SaldoTotal.Add(p.saldo)
			resp.InteresTotal = resp.InteresTotal.Add(p.interes)
			resp.Deudas = append(resp.Deudas, dto.DeudaResponse{
				ID:               p.deuda.ID.String(),
				Principal:        p.deuda.Principal,
				Tasa:             p.deuda.Tasa,
				Estado:           p.deuda.Estado,
				Fecha:            p.deuda.Fecha,
				SaldoPendiente:   p.saldo,
				InteresPendiente: p.interes,
			})
		}
		creditos, err := s.repo.LockCreditosTx(ctx, tx, c, clienteID)
		if err != nil {
			return err
		}
		for _, cr := range creditos {
			resp.CreditoNoAsignado = resp.CreditoNoAsignado.Add(cr.Disponible())
			resp.Creditos = append(resp.Creditos, dto.CreditoResponse{
				ID:         cr.ID.String(),
				PagoID:     cr.PagoID.String(),
				Monto:      cr.Monto,
				Aplicado:   cr.Aplicado,
				Disponible: cr.Disponible(),
				Estado:     cr.Estado,
				Fecha:      cr.Fecha,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ── Derived balances ──────────────────────────────────────────────────────────

func (s *deudaService) posicionesTx(ctx context.Context, tx *gorm.DB, c model.Cartera, clienteID uuid.UUID, hasta time.Time, estados ...string) ([]posicion, error) {
	deudas, err := s.repo.LockDeudasTx(ctx, tx, c, clienteID, estados...)
	if err != nil {
		return nil, err
	}
	return s.posicionesDe(ctx, tx, c, deudas, hasta)
}

func (s *deudaService) posicionesDe(ctx context.Context, tx *gorm.DB, c model.Cartera, deudas []model.Deuda, hasta time.Time) ([]posicion, error) {
	ids := make([]uuid.UUID, 0, len(deudas))
	for _, d := range deudas {
		ids = append(ids, d.ID)
	}
	movs, err := s.repo.MovimientosVivosTx(ctx, tx, c, ids)
	if err != nil {
		return nil, err
	}
	porDeuda := make(map[uuid.UUID][]model.MovimientoDeuda, len(deudas))
	for _, m := range movs {
		porDeuda[m.DeudaID] = append(porDeuda[m.DeudaID], m)
	}
	out := make([]posicion, 0, len(deudas))
	for i := range deudas {
		out = append(out, calcularPosicion(c, &deudas[i], porDeuda[deudas[i].ID], hasta))
	}
	return out, nil
}

// calcularPosicion derives saldo and pending interest from the live movements
// of one debt, given in secuencia order.
//
// Loans: saldo = principal + cargos + aumentos − abonos − abonos de interés;
// interest pending = cargos − abonos de interés, capped at the saldo.
// Advances: saldo = principal − abonos; interest accrues as simple monthly
// interest (tasa% per 30 days) on the capital outstanding over each interval.
func calcularPosicion(c model.Cartera, d *model.Deuda, movs []model.MovimientoDeuda, hasta time.Time) posicion {
	if c.InteresDevengado {
		capital := d.Principal
		desde := d.Fecha
		devengado := decimal.Zero
		pagado := decimal.Zero
		for _, m := range movs {
			switch m.Tipo {
			case c.Abono:
				devengado = devengado.Add(interesSimple(capital, d.Tasa, desde, m.Fecha))
				capital = capital.Sub(m.Monto)
				if m.Fecha.After(desde) {
					desde = m.Fecha
				}
			case c.AbonoInteres:
				pagado = pagado.Add(m.Monto)
			}
		}
		devengado = devengado.Add(interesSimple(capital, d.Tasa, desde, hasta))
		interes := devengado.Sub(pagado).Round(2)
		if interes.IsNegative() {
			interes = decimal.Zero
		}
		return posicion{deuda: d, saldo: capital, interes: interes}
	}

	saldo := d.Principal
	cargos := decimal.Zero
	abonosInteres := decimal.Zero
	for _, m := range movs {
		switch m.Tipo {
		case c.CargoInteres:
			saldo = saldo.Add(m.Monto)
			cargos = cargos.Add(m.Monto)
		case c.Aumento:
			saldo = saldo.Add(m.Monto)
		case c.Abono:
			saldo = saldo.Sub(m.Monto)
		case c.AbonoInteres:
			saldo = saldo.Sub(m.Monto)
			abonosInteres = abonosInteres.Add(m.Monto)
		}
	}
	interes := decimal.Min(cargos.Sub(abonosInteres), saldo)
	if interes.IsNegative() {
		interes = decimal.Zero
	}
	return posicion{deuda: d, saldo: saldo, interes: interes}
}

// interesSimple is capital · tasa/100 · días/30 over whole days in [desde, hasta).
func interesSimple(capital, tasa decimal.Decimal, desde, hasta time.Time) decimal.Decimal {
	if !capital.IsPositive() || !tasa.IsPositive() || !hasta.After(desde) {
		return decimal.Zero
	}
	dias := int64(hasta.Sub(desde).Hours() / 24)
	if dias <= 0 {
		return decimal.Zero
	}
	return capital.Mul(tasa).Div(cien).Mul(decimal.NewFromInt(dias)).Div(treinta)
}

func filtrarDeuda(ps []posicion, id uuid.UUID) ([]posicion, error) {
	for _, p := range ps {
		if p.deuda.ID == id {
			return []posicion{p}, nil
		}
	}
	return nil, apierror.NotFound("deuda no encontrada o no activa")
}
