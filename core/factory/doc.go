// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation. Metrics sinks and optimizer scorers are built this
// way.
//
// Example usage:
//
//	reg := factory.NewRegistry[Scorer]()
//	reg.Register("risk", func(conf map[string]any) (Scorer, error) {
//	    s := RiskScorer{RiskWeight: 10}
//	    if err := factory.Decode(conf, &s); err != nil {
//	        return nil, err
//	    }
//	    return s, nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "risk", Conf: map[string]any{"risk_weight": 5}})
package factory
