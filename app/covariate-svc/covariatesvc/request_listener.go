package covariatesvc

import (
	"github.com/nats-io/nats.go"
	logger "log"
	"sync"
)

//runCovariateRequestListener starts NATS subscription on subject for CovariateRequest messages and replies to each
//with a CovariateResponse. Ends NATS subscription and returns on shutdownSignal
func runCovariateRequestListener(
	log *logger.Logger,
	wg *sync.WaitGroup,
	natsConn *nats.Conn,
	subject string,
	maxTimestamps int,
	shutdownSignal chan bool) error {
	ch := make(chan *nats.Msg, 64)
	log.Printf("Subscribing to covariate requests on subject:%s on nats: %v\n", subject, natsConn.Servers())
	sub, err := natsConn.ChanSubscribe(subject, ch)
	if err != nil {
		wg.Done()
		return err
	}

	go func() {
		defer wg.Done()
		for {
			select {
			case msg := <-ch:
				respondToCovariateRequest(log, msg, maxTimestamps)
			case <-shutdownSignal:
				log.Printf("ending covariate request listener on shutdown signal\n")
				log.Printf("unsubscribing to nats\n")
				err := sub.Unsubscribe()
				if err != nil {
					log.Printf("Error unsubscribing to nats:%s", err)
				}
				return
			}
		}
	}()
	return nil
}

//respondToCovariateRequest builds the CovariateResponse for msg and sends it to the reply subject
func respondToCovariateRequest(log *logger.Logger, msg *nats.Msg, maxTimestamps int) {
	response, err := processRequestPayload(msg.Data, maxTimestamps)
	if err != nil {
		log.Printf("error processing covariate request: %v, payload:%s", err, truncatePayload(msg.Data))
		if response == nil {
			return
		}
	}
	if len(msg.Reply) == 0 {
		log.Printf("covariate request on %s has no reply subject, dropping response", msg.Subject)
		return
	}
	err = msg.Respond(response)
	if err != nil {
		log.Printf("error responding to covariate request: %v", err)
	}
}

//truncatePayload limits logged payloads
func truncatePayload(payload []byte) string {
	const maxLogged = 256
	if len(payload) > maxLogged {
		return string(payload[:maxLogged]) + "..."
	}
	return string(payload)
}
