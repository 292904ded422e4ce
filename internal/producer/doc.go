// Package producer runs an optional demo publisher that feeds a topic at
// jittered intervals. It exists so a fresh install has events to observe;
// production deployments leave it disabled and publish over HTTP.
package producer
