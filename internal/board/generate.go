package board

import "math/rand/v2"

// Generate builds a rows x cols board with mineCount mines at distinct random
// positions. Parameters must pass [ValidateParams].
func Generate(rows, cols, mineCount int, r *rand.Rand) *Board {
	return generate(rows, cols, mineCount, nil, r)
}

// GenerateAvoiding is [Generate] with avoid excluded from the mine
// candidates, so the cell at avoid is always safe.
func GenerateAvoiding(rows, cols, mineCount int, avoid Point, r *rand.Rand) *Board {
	return generate(rows, cols, mineCount, &avoid, r)
}

func generate(rows, cols, mineCount int, avoid *Point, r *rand.Rand) *Board {
	b := newEmpty(rows, cols)
	b.MineCount = mineCount

	/*
	 * Write down the list of possible mine locations.
	 */
	candidates := make([]int, 0, rows*cols)
	for i := range rows * cols {
		if avoid != nil && i == avoid.Row*cols+avoid.Col {
			continue
		}
		candidates = append(candidates, i)
	}

	/*
	 * Now pick mineCount off the list at random, moving the last
	 * unpicked candidate into each hole.
	 */
	k := len(candidates)
	for range mineCount {
		i := r.IntN(k)
		j := candidates[i]
		b.Cells[j/cols][j%cols].Value = Mine
		k--
		candidates[i] = candidates[k]
	}

	b.fillCounts()
	return b
}
