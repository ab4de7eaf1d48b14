package models

// Breach 单项阈值越界
type Breach struct {
	Signal    Signal  `json:"signal"`
	Value     float64 `json:"value"`
	Operator  string  `json:"operator"` // ">" 或 "<"
	Threshold float64 `json:"threshold"`
}

// Classification 紧急分级结果
type Classification struct {
	IsEmergency bool     `json:"is_emergency"`
	Reason      string   `json:"reason,omitempty"`
	Breaches    []Breach `json:"breaches,omitempty"`
}
