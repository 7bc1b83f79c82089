// Package flock is the core of the flocking simulation: planar agents (boids)
// grouped under a flock node, and the per-tick pipeline that hands each agent
// the force computed by a pluggable steering policy.
//
// The package never owns the scene. Agents and flocks are scripts bound to
// nodes of a host tree (see Host and Node); the host assigns instance ids,
// fires the enter/ready/exit signals and stores positions. Agents refer to
// their flock by instance id only and every access goes through Host.Lookup,
// so the two sides can be destroyed in any order.
package flock
