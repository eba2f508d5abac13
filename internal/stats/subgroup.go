package stats

// SubgroupConstants are the X-bar/R chart factors for one subgroup size.
type SubgroupConstants struct {
	N  int     `json:"n"`
	A2 float64 `json:"a2"`
	D2 float64 `json:"d2"`
	D3 float64 `json:"d3"`
	D4 float64 `json:"d4"`
}

var subgroupTable = map[int]SubgroupConstants{
	2:  {N: 2, A2: 1.880, D2: 1.128, D3: 0, D4: 3.267},
	3:  {N: 3, A2: 1.023, D2: 1.693, D3: 0, D4: 2.575},
	4:  {N: 4, A2: 0.729, D2: 2.059, D3: 0, D4: 2.282},
	5:  {N: 5, A2: 0.577, D2: 2.326, D3: 0, D4: 2.115},
	6:  {N: 6, A2: 0.483, D2: 2.534, D3: 0, D4: 2.004},
	7:  {N: 7, A2: 0.419, D2: 2.704, D3: 0.076, D4: 1.924},
	8:  {N: 8, A2: 0.373, D2: 2.847, D3: 0.136, D4: 1.864},
	9:  {N: 9, A2: 0.337, D2: 2.970, D3: 0.184, D4: 1.816},
	10: {N: 10, A2: 0.308, D2: 3.078, D3: 0.223, D4: 1.777},
}

// ConstantsFor returns the factors for subgroup size n, clamped to 2..10.
func ConstantsFor(n int) SubgroupConstants {
	if n < 2 {
		n = 2
	}
	if n > 10 {
		n = 10
	}
	return subgroupTable[n]
}
