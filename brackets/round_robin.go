package brackets

// Fixture: одна встреча круговой системы.
type Fixture struct {
	Round int
	Leg   int
	A, B  int
}

// RoundRobin составляет круг методом вращения: первый участник стоит
// на месте, остальные сдвигаются. При нечётном числе один участник отдыхает
// в каждом туре. С double следом идёт зеркальный второй круг.
func RoundRobin(ids []int, double bool) []Fixture {
	n := len(ids)
	if n < 2 {
		return nil
	}

	ring := make([]int, n)
	copy(ring, ids)
	if n%2 == 1 {
		ring = append(ring, 0) // bye
		n++
	}
	rounds := n - 1

	fixtures := make([]Fixture, 0, rounds*n/2)
	for r := 0; r < rounds; r++ {
		for i := 0; i < n/2; i++ {
			a, b := ring[i], ring[n-1-i]
			if a == 0 || b == 0 {
				continue
			}
			// Неподвижный участник меняет сторону.
			if i == 0 && r%2 == 1 {
				a, b = b, a
			}
			fixtures = append(fixtures, Fixture{Round: r + 1, Leg: 1, A: a, B: b})
		}
		// Сдвиг всех, кроме первого, на одну позицию.
		last := ring[n-1]
		copy(ring[2:], ring[1:n-1])
		ring[1] = last
	}

	if double {
		first := len(fixtures)
		for _, f := range fixtures[:first] {
			fixtures = append(fixtures, Fixture{Round: f.Round + rounds, Leg: 2, A: f.B, B: f.A})
		}
	}
	return fixtures
}
