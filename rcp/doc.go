// The rcp package models the interrupt lines and task queues of the Reality
// Coprocessor.
//
// The RCP executes graphics tasks asynchronously to the CPU and reports
// progress by raising interrupts.  Packages that emulate or drive an RCP use
// [Interrupts] to dispatch those and [Queue] to hand over work.
package rcp

// Reality Coprocessor
// https://ultra64.ca/files/documentation/online-manuals/man/pro-man/pro08/index8.1.html
