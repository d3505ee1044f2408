package model

// Secuencia is a named monotonic counter. FIFO order is taken from the value
// captured at insert time, never from row ids or timestamps.
type Secuencia struct {
	Nombre string `gorm:"type:varchar(60);primaryKey"`
	Valor  int64  `gorm:"not null;default:0"`
}
