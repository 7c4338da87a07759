// Package module maps wire names of dispatchable calls to decoders that build
// typed call values.
//
// A call on the wire is an Envelope naming its module and call plus a JSON
// argument object. Collaborators that receive calls as data (the HTTP API and
// the scenario DSL) decode them through a Registry, while dispatch itself
// stays a closed type switch in the runtime.
package module
