/*
Package rabbitmq publishes service events to RabbitMQ.
Events go to a topic exchange routed by their topic, through an auto-reconnect
publisher, with optional header propagation via a service.HeaderPropagator.
*/
package rabbitmq
