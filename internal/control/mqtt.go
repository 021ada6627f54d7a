package control

import (
	"encoding/json"

	"github.com/lanikai/mosaic/internal/broker"
)

// SubscribeMQTT runs start and stop commands published on <prefix>/start and
// <prefix>/stop (payloads are ignored). After each command the status is
// published, retained, on <prefix>/status.
func SubscribeMQTT(c broker.Client, prefix string, ctrl Controller) error {
	commands := map[string]func() error{
		prefix + "/start": ctrl.Start,
		prefix + "/stop":  ctrl.Stop,
	}

	for topic, run := range commands {
		run := run
		err := broker.Subscribe(c, topic, func(topic string, _ []byte) {
			log.Info("MQTT command %s", topic)
			if err := run(); err != nil {
				log.Error("%s: %v", topic, err)
			}
			publishStatus(c, prefix, ctrl)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func publishStatus(c broker.Client, prefix string, ctrl Controller) {
	payload, err := json.Marshal(ctrl.Status())
	if err != nil {
		log.Warn("Encode status: %v", err)
		return
	}
	// Fire and forget; the status is informational.
	c.Publish(prefix+"/status", 0, true, payload)
}
