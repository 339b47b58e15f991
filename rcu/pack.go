package rcu

// loader is a single Guard-producing step used internally to build a
// pack. It exists so the construction-failure teardown path has
// something to fail with in tests: Store.Load itself never fails.
type loader[T any] func() (*Guard[T], error)

func loadFrom[T any](s *Store[T]) loader[T] {
	return func() (*Guard[T], error) { return s.Load(), nil }
}

// Pack2 holds two Guards built together so a scope sees a coherent
// snapshot across two Stores at once. Go's type parameters have no
// variadic form, so the guard_pack template becomes one fixed-arity type
// per arity actually needed; Pack3 and Pack4 follow the same shape.
type Pack2[A, B any] struct {
	first  *Guard[A]
	second *Guard[B]
}

// First returns the pack's Guard over A.
func (p *Pack2[A, B]) First() *Guard[A] { return p.first }

// Second returns the pack's Guard over B.
func (p *Pack2[A, B]) Second() *Guard[B] { return p.second }

// Close releases the pack's Guards in reverse of construction order.
func (p *Pack2[A, B]) Close() {
	if p.second != nil {
		p.second.Release()
	}
	if p.first != nil {
		p.first.Release()
	}
}

// MakePack2 loads a and b, left to right, into a Pack2.
func MakePack2[A, B any](a *Store[A], b *Store[B]) (*Pack2[A, B], error) {
	return buildPack2(loadFrom(a), loadFrom(b))
}

// MakePack2FromGuards wraps two already-built Guards in a Pack2, for
// isolating guards that were loaded separately onto a single line.
func MakePack2FromGuards[A, B any](a *Guard[A], b *Guard[B]) *Pack2[A, B] {
	return &Pack2[A, B]{first: a, second: b}
}

func buildPack2[A, B any](loadA loader[A], loadB loader[B]) (*Pack2[A, B], error) {
	a, err := loadA()
	if err != nil {
		return nil, err
	}
	b, err := loadB()
	if err != nil {
		a.Release()
		return nil, err
	}
	return &Pack2[A, B]{first: a, second: b}, nil
}

// Pack3 is the three-Store counterpart of Pack2.
type Pack3[A, B, C any] struct {
	first  *Guard[A]
	second *Guard[B]
	third  *Guard[C]
}

func (p *Pack3[A, B, C]) First() *Guard[A]  { return p.first }
func (p *Pack3[A, B, C]) Second() *Guard[B] { return p.second }
func (p *Pack3[A, B, C]) Third() *Guard[C]  { return p.third }

// Close releases the pack's Guards in reverse of construction order.
func (p *Pack3[A, B, C]) Close() {
	if p.third != nil {
		p.third.Release()
	}
	if p.second != nil {
		p.second.Release()
	}
	if p.first != nil {
		p.first.Release()
	}
}

// MakePack3 loads a, b, and c, left to right, into a Pack3.
func MakePack3[A, B, C any](a *Store[A], b *Store[B], c *Store[C]) (*Pack3[A, B, C], error) {
	return buildPack3(loadFrom(a), loadFrom(b), loadFrom(c))
}

// MakePack3FromGuards wraps three already-built Guards in a Pack3.
func MakePack3FromGuards[A, B, C any](a *Guard[A], b *Guard[B], c *Guard[C]) *Pack3[A, B, C] {
	return &Pack3[A, B, C]{first: a, second: b, third: c}
}

func buildPack3[A, B, C any](loadA loader[A], loadB loader[B], loadC loader[C]) (*Pack3[A, B, C], error) {
	a, err := loadA()
	if err != nil {
		return nil, err
	}
	b, err := loadB()
	if err != nil {
		a.Release()
		return nil, err
	}
	c, err := loadC()
	if err != nil {
		b.Release()
		a.Release()
		return nil, err
	}
	return &Pack3[A, B, C]{first: a, second: b, third: c}, nil
}

// Pack4 is the four-Store counterpart of Pack2.
type Pack4[A, B, C, D any] struct {
	first  *Guard[A]
	second *Guard[B]
	third  *Guard[C]
	fourth *Guard[D]
}

func (p *Pack4[A, B, C, D]) First() *Guard[A]  { return p.first }
func (p *Pack4[A, B, C, D]) Second() *Guard[B] { return p.second }
func (p *Pack4[A, B, C, D]) Third() *Guard[C]  { return p.third }
func (p *Pack4[A, B, C, D]) Fourth() *Guard[D] { return p.fourth }

// Close releases the pack's Guards in reverse of construction order.
func (p *Pack4[A, B, C, D]) Close() {
	if p.fourth != nil {
		p.fourth.Release()
	}
	if p.third != nil {
		p.third.Release()
	}
	if p.second != nil {
		p.second.Release()
	}
	if p.first != nil {
		p.first.Release()
	}
}

// MakePack4 loads a, b, c, and d, left to right, into a Pack4.
func MakePack4[A, B, C, D any](a *Store[A], b *Store[B], c *Store[C], d *Store[D]) (*Pack4[A, B, C, D], error) {
	return buildPack4(loadFrom(a), loadFrom(b), loadFrom(c), loadFrom(d))
}

// MakePack4FromGuards wraps four already-built Guards in a Pack4.
func MakePack4FromGuards[A, B, C, D any](a *Guard[A], b *Guard[B], c *Guard[C], d *Guard[D]) *Pack4[A, B, C, D] {
	return &Pack4[A, B, C, D]{first: a, second: b, third: c, fourth: d}
}

func buildPack4[A, B, C, D any](loadA loader[A], loadB loader[B], loadC loader[C], loadD loader[D]) (*Pack4[A, B, C, D], error) {
	a, err := loadA()
	if err != nil {
		return nil, err
	}
	b, err := loadB()
	if err != nil {
		a.Release()
		return nil, err
	}
	c, err := loadC()
	if err != nil {
		b.Release()
		a.Release()
		return nil, err
	}
	d, err := loadD()
	if err != nil {
		c.Release()
		b.Release()
		a.Release()
		return nil, err
	}
	return &Pack4[A, B, C, D]{first: a, second: b, third: c, fourth: d}, nil
}
