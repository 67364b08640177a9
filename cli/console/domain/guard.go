package domain

// Ticket метка запроса: эпоха идентичности состояния на момент выдачи и
// порядковый номер запроса.
type Ticket struct {
	Epoch uint64
	Seq   uint64
}

// guard отсекает устаревшие ответы. Сам не синхронизирован, живёт под
// мьютексом владельца данных.
type guard struct {
	epoch   uint64
	issued  uint64
	applied uint64
}

func (g *guard) issue() Ticket {
	g.issued++
	return Ticket{Epoch: g.epoch, Seq: g.issued}
}

// advance делает недействительными все выданные метки.
func (g *guard) advance() {
	g.epoch++
}

// accept пропускает ответ текущей эпохи с номером новее последнего
// применённого.
func (g *guard) accept(t Ticket) bool {
	if t.Epoch != g.epoch || t.Seq <= g.applied {
		return false
	}
	g.applied = t.Seq
	return true
}

// latest пропускает только ответ на последний выданный запрос.
func (g *guard) latest(t Ticket) bool {
	if t.Epoch != g.epoch || t.Seq != g.issued {
		return false
	}
	g.applied = t.Seq
	return true
}
